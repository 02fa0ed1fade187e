package httpdto

type CreateCandidateRequest struct {
	Name       string   `json:"name" binding:"required"`
	Email      string   `json:"email" binding:"required,email"`
	Phone      string   `json:"phone,omitempty"`
	Position   string   `json:"position,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Experience int      `json:"experience,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// UpdateCandidateRequest carries only the fields being changed; nil pointers
// leave the stored value alone.
type UpdateCandidateRequest struct {
	Name       *string   `json:"name,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Position   *string   `json:"position,omitempty"`
	Status     *string   `json:"status,omitempty"`
	Skills     *[]string `json:"skills,omitempty"`
	Experience *int      `json:"experience,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
}
