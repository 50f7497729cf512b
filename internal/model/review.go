package model

// Review visibility on product pages is gated by admin approval.
type Review struct {
	ID         int64    `json:"id"`
	Rating     int      `json:"rating"`
	Comment    string   `json:"comment"`
	IsApproved bool     `json:"isApproved"`
	Product    *Product `json:"product,omitempty"`
	User       *User    `json:"user,omitempty"`
}
