package dto

import "github.com/ergosit/posture-auth/internal/domain"

// NewUserInfo builds the public view of a user.
func NewUserInfo(user *domain.User) UserInfo {
	return UserInfo{
		ID:                user.ID,
		Email:             user.Email,
		FullName:          user.FullName,
		Phone:             user.PhoneNumber(),
		Age:               user.Age,
		Gender:            user.Gender,
		Role:              user.Role,
		ProfilePictureURL: user.ProfilePictureURL,
		IsVerified:        user.IsVerified,
		HasPassword:       user.HasPassword(),
		CreatedAt:         user.CreatedAt,
	}
}

func NewLoginLogList(logs []*domain.LoginLog) LoginLogListResponse {
	out := make([]LoginLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, LoginLogResponse{
			ID:        l.ID,
			UserID:    l.UserID,
			Method:    l.Method,
			Status:    l.Status,
			UserAgent: l.UserAgent,
			IPAddress: l.IPAddress,
			Timestamp: l.Timestamp,
		})
	}
	return LoginLogListResponse{Logs: out, Count: len(out)}
}

func NewDetectionResponse(d *domain.Detection) DetectionResponse {
	return DetectionResponse{
		ID:        d.ID,
		UserID:    d.UserID,
		Posture:   d.Posture,
		Angle:     d.Angle,
		Timestamp: d.Timestamp,
	}
}

func NewDetectionList(detections []*domain.Detection) DetectionListResponse {
	out := make([]DetectionResponse, 0, len(detections))
	for _, d := range detections {
		out = append(out, NewDetectionResponse(d))
	}
	return DetectionListResponse{Detections: out, Count: len(out)}
}
