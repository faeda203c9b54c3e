package types

import (
	"time"
)

type User struct {
	Id               int       `json:"_id"`
	FullName         string    `json:"fullName"`
	EmailAddress     string    `json:"email,omitempty"`
	ProfilePic       string    `json:"profilePic"`
	Plan             string    `json:"plan,omitempty"`
	SubscriptionPlan string    `json:"subscriptionPlan,omitempty"`
	IsProfilePublic  bool      `json:"isProfilePublic"`
	Friends          []int     `json:"friends,omitempty"`
	FriendRequests   []int     `json:"friendRequests,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt,omitempty"`
}

type UserSummary struct {
	Id         int    `json:"_id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
}

type FriendRequests struct {
	Received []UserSummary `json:"receivedRequests"`
	Sent     []UserSummary `json:"sentRequests"`
}

type Message struct {
	Id         string    `json:"_id"`
	Seq        int       `json:"seq"`
	SenderId   int       `json:"senderId"`
	ReceiverId int       `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
