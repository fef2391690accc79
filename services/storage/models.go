package storage

import "time"

// ContactMessage is a stored contact form submission. Records are
// write-once: ID and CreatedAt are assigned by the store on create and no
// store exposes an update or delete.
type ContactMessage struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Subject   string    `json:"subject" db:"subject"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// NewContactMessage holds the caller-supplied fields of a message.
type NewContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// ListOptions paginates the administrative listing. A zero Limit returns
// every record from Offset on.
type ListOptions struct {
	Limit  int
	Offset int
}
