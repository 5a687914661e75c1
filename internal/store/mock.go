package store

import (
	"fjacquet/budget-csv/internal/models"
)

// MockCategoryStore is an in-memory CategorySource for tests.
type MockCategoryStore struct {
	Categories          []models.CategoryConfig
	LoadCategoriesError error
}

// LoadCategories returns the mock categories.
func (m *MockCategoryStore) LoadCategories() ([]models.CategoryConfig, error) {
	if m.LoadCategoriesError != nil {
		return nil, m.LoadCategoriesError
	}
	out := make([]models.CategoryConfig, len(m.Categories))
	copy(out, m.Categories)
	return out, nil
}
