package models

type AdminStats struct {
	TotalUsers   int64 `json:"totalUsers"`
	TotalStores  int64 `json:"totalStores"`
	TotalRatings int64 `json:"totalRatings"`
}

type StoreSummary struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type OwnerDashboard struct {
	Store            StoreSummary `json:"store"`
	AverageRating    float64      `json:"averageRating"`
	TotalRatings     int64        `json:"totalRatings"`
	UsersWithRatings []Rater      `json:"usersWithRatings"`
}
