package models

// All returns every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Team{},
		&TeamMember{},
		&Board{},
		&Task{},
		&RefreshToken{},
		&Notification{},
		&Message{},
		&Shift{},
	}
}
