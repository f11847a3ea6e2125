package activity

import (
	"fmt"

	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/database"
)

// PrimeDB 负责初始化activity模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Record{}, &JoinLeaveRecord{}); err != nil {
		return fmt.Errorf("无法迁移活跃台账表: %w", err)
	}
	fmt.Println("活跃台账数据库表迁移成功。")
	return nil
}
