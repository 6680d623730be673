package domain

// Category - категория заведений
type Category struct {
	ID          ID         `json:"id,omitempty"`
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName,omitempty"`
	Color       string     `json:"color,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	IsDelete    DeleteFlag `json:"isDelete,omitempty"`
}

// CategoryUpsert - тело запроса insert-or-update-or-delete для категорий.
// Наличие ID выбирает update, флаг Deleted выбирает мягкое удаление.
type CategoryUpsert struct {
	ID       *ID        `json:"id,omitempty"`
	Name     string     `json:"name,omitempty"`
	Icon     string     `json:"icon,omitempty"`
	Color    string     `json:"color,omitempty"`
	IsDelete DeleteFlag `json:"isDelete"`
}
