package roster

import (
	"time"

	"github.com/aanand-mishra/alumnos-api/internal/types"
)

// Seed is an immutable snapshot of the records every reset restores.
type Seed struct {
	students []types.Student
	nextID   int64
}

// NewSeed captures students (copied) as the reset target. The id counter
// after a reset is one past the highest seed id.
func NewSeed(students []types.Student) Seed {
	var maxID int64
	copied := make([]types.Student, 0, len(students))
	for _, s := range students {
		if s.Phone != nil {
			phone := *s.Phone
			s.Phone = &phone
		}
		copied = append(copied, s)
		if s.ID > maxID {
			maxID = s.ID
		}
	}

	return Seed{students: copied, nextID: maxID + 1}
}

// Students returns a fresh copy of the seeded records.
func (s Seed) Students() []types.Student {
	return NewSeed(s.students).students
}

// NextID is the id the first record created after a reset receives.
func (s Seed) NextID() int64 { return s.nextID }

func strPtr(s string) *string { return &s }

// DemoSeed is the three-student roster the demo starts with, registered
// at the given instant.
func DemoSeed(registeredAt time.Time) Seed {
	return NewSeed([]types.Student{
		{
			ID:           1,
			FirstName:    "Juan",
			LastName:     "Pérez",
			Email:        "juan@email.com",
			Phone:        strPtr("123456789"),
			Course:       "Matemáticas",
			Level:        "Básico",
			Active:       true,
			RegisteredAt: registeredAt,
		},
		{
			ID:           2,
			FirstName:    "María",
			LastName:     "García",
			Email:        "maria@email.com",
			Phone:        strPtr("987654321"),
			Course:       "Ciencias",
			Level:        "Intermedio",
			Active:       true,
			RegisteredAt: registeredAt,
		},
		{
			ID:           3,
			FirstName:    "Carlos",
			LastName:     "López",
			Email:        "carlos@email.com",
			Phone:        strPtr("555666777"),
			Course:       "Historia",
			Level:        "Avanzado",
			Active:       false,
			RegisteredAt: registeredAt,
		},
	})
}
