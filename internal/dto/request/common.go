package request

// StatusRequest carries a bare status transition. The target enum is
// validated by the usecase that owns the entity.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}
