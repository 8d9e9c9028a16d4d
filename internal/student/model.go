package student

import "github.com/uptrace/bun"

type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`

	ID    int    `bun:"id,pk,autoincrement" json:"id"`
	Name  string `bun:"name,notnull" json:"name"`
	Email string `bun:"email,notnull" json:"email"`
	Major string `bun:"major,notnull" json:"major"`
}

// Request is the allow-listed set of fields a client may set on a student.
// The whole body is never bound to the model directly; fields are validated
// here and copied explicitly per operation.
type Request struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,contains=@"`
	Major string `json:"major" validate:"required"`
}
