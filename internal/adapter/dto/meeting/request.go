package meeting

// UploadMeetingRequest represents the form fields sent with a recording
type UploadMeetingRequest struct {
	Title          string   `form:"title" validate:"omitempty,max=255"`
	Description    string   `form:"description"`
	ParticipantIDs []string `form:"participant_ids" validate:"omitempty,dive,uuid"`
}

// UpdateMeetingRequest represents the request to edit a meeting
type UpdateMeetingRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description,omitempty"`
}

// ListMeetingsRequest represents query parameters for listing meetings
type ListMeetingsRequest struct {
	Status   string `query:"status" validate:"omitempty,oneof=uploaded transcribing processing completed failed"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}
