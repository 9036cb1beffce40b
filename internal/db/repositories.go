package db

import "gorm.io/gorm"

type Repositories struct {
	Users      *UserRepository
	Conditions *ConditionRepository
	Entries    *ProgressEntryRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(database),
		Conditions: NewConditionRepository(database),
		Entries:    NewProgressEntryRepository(database),
	}
}
