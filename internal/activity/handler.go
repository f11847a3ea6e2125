package activity

import (
	"net/http"
	"time"

	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/database"
	"github.com/gin-gonic/gin"
)

// MemberEventBody 定义了活跃/加入事件的请求体
type MemberEventBody struct {
	MemberID    string `json:"memberId" binding:"required"`
	DisplayName string `json:"displayName"`
}

// LeaveEventBody 定义了离开事件的请求体
type LeaveEventBody struct {
	MemberID string `json:"memberId" binding:"required"`
}

// MemberActivityResponse 是活跃查询接口的响应模型
type MemberActivityResponse struct {
	MemberID       string     `json:"memberId"`
	DisplayName    string     `json:"displayName"`
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`
	JoinedAt       *time.Time `json:"joinedAt,omitempty"`
	LeftAt         *time.Time `json:"leftAt,omitempty"`
	Rejoined       bool       `json:"rejoined"`
	RejoinCount    int        `json:"rejoinCount"`
}

// HandleMessageEvent 处理一次离散上报的成员活跃事件
func HandleMessageEvent(c *gin.Context) {
	var body MemberEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if err := TouchActivity(database.DB, body.MemberID, body.DisplayName, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleJoinEvent 处理成员加入事件
func HandleJoinEvent(c *gin.Context) {
	var body MemberEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if err := RecordJoin(database.DB, body.MemberID, body.DisplayName, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleLeaveEvent 处理成员离开事件
func HandleLeaveEvent(c *gin.Context) {
	var body LeaveEventBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	if err := RecordLeave(database.DB, body.MemberID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetMemberActivity 查询单个成员的台账与加入履历
func GetMemberActivity(c *gin.Context) {
	memberID := c.Param("memberId")

	record, err := FindRecordByMemberID(database.DB, memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	joinLeave, err := FindJoinLeaveByMemberID(database.DB, memberID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if record == nil && joinLeave == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "未找到该成员的任何记录"})
		return
	}

	resp := MemberActivityResponse{MemberID: memberID}
	if record != nil {
		resp.DisplayName = record.DisplayName
		t := record.LastActivityAt
		resp.LastActivityAt = &t
	}
	if joinLeave != nil {
		if resp.DisplayName == "" {
			resp.DisplayName = joinLeave.DisplayName
		}
		t := joinLeave.JoinedAt
		resp.JoinedAt = &t
		resp.LeftAt = joinLeave.LeftAt
		resp.Rejoined = joinLeave.Rejoined
		resp.RejoinCount = joinLeave.RejoinCount
	}
	c.JSON(http.StatusOK, resp)
}
