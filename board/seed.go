package board

import "kanban-api/domain"

// Seed builds the board a new session starts with.
func Seed(title string, newID func() string) domain.Board {
	return domain.Board{
		ID:    newID(),
		Title: title,
		Columns: []domain.Column{
			{
				ID:    newID(),
				Title: "To Do",
				Cards: []domain.Card{
					{
						ID:          newID(),
						Title:       "Learn React",
						Description: "Study React fundamentals and hooks",
						Labels:      []string{"learning"},
					},
					{
						ID:          newID(),
						Title:       "Build a Trello Clone",
						Description: "Create a Trello clone with React",
						Labels:      []string{"project"},
					},
				},
			},
			{
				ID:    newID(),
				Title: "In Progress",
				Cards: []domain.Card{
					{
						ID:          newID(),
						Title:       "Setup development environment",
						Description: "Install necessary tools and dependencies",
						Labels:      []string{"setup"},
					},
				},
			},
			{
				ID:    newID(),
				Title: "Done",
				Cards: []domain.Card{},
			},
		},
	}
}
