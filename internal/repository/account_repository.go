package repository

import (
	"database/sql"

	"github.com/marklangat/waleads-backend/internal/model"
)

type AccountRepository struct {
	DB *sql.DB
}

// GetByID fetches an account. Returns nil, nil when not found.
func (r *AccountRepository) GetByID(id int) (*model.Account, error) {
	query := `
		SELECT id, name, gateway_instance, prompt_context
		FROM accounts
		WHERE id = $1
	`
	var a model.Account
	err := r.DB.QueryRow(query, id).Scan(&a.ID, &a.Name, &a.GatewayInstance, &a.PromptContext)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
