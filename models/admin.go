package models

// AdminUsername is one allow-list entry. Position orders entries as configured.
type AdminUsername struct {
	Username string `db:"username" json:"username"`
	Position int64  `db:"position" json:"position"`
}
