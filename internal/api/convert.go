package api

import (
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/database"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/types"
)

func toUser(u database.User) types.User {
	return types.User{
		Id:               u.Id,
		FullName:         u.FullName,
		EmailAddress:     u.EmailAddress,
		ProfilePic:       u.ProfilePic,
		Plan:             u.Plan,
		SubscriptionPlan: u.SubscriptionPlan,
		IsProfilePublic:  u.IsProfilePublic,
		Friends:          u.Friends,
		FriendRequests:   u.FriendRequests,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func toSummaries(users []database.UserSummary) []types.UserSummary {
	summaries := make([]types.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, types.UserSummary{
			Id:         u.Id,
			FullName:   u.FullName,
			ProfilePic: u.ProfilePic,
		})
	}
	return summaries
}

func toMessage(m database.Message) types.Message {
	return types.Message{
		Id:         m.ExternalId,
		Seq:        m.Id,
		SenderId:   m.SenderId,
		ReceiverId: m.ReceiverId,
		Text:       m.Text,
		Image:      m.Image,
		CreatedAt:  m.CreatedAt,
	}
}

func toMessages(msgs []database.Message) []types.Message {
	out := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessage(m))
	}
	return out
}
