package dto

// CreateCampaignRequest creates a draft campaign with an audience filter.
type CreateCampaignRequest struct {
	Name     string         `json:"name" validate:"required"`
	Message  string         `json:"message" validate:"required"`
	Audience AudienceFilter `json:"audience"`
}

// AudienceFilter selects which customers receive a campaign. Zero values
// select the whole active customer base.
type AudienceFilter struct {
	BirthMonth   int  `json:"birth_month"`
	OnlyActive   bool `json:"only_active"`
	WithUpcoming bool `json:"with_upcoming_appointment"`
}

// CampaignProgressResponse reports dispatch progress for a campaign.
type CampaignProgressResponse struct {
	CampaignID string `json:"campaign_id"`
	Status     string `json:"status"`
	Total      int    `json:"total"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	Pending    int    `json:"pending"`
}
