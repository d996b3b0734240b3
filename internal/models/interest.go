package models

import (
	"time"
)

// Interest 订阅关系（interested 关注 interesting）
// 复合唯一键避免重复订阅
type Interest struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	InterestedID  uint      `gorm:"not null;index;uniqueIndex:idx_interests_pair" json:"interested_id"`
	InterestingID uint      `gorm:"not null;index;uniqueIndex:idx_interests_pair" json:"interesting_id"`
	CreatedAt     time.Time `json:"created_at"`
}
