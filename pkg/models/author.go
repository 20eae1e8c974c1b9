package models

type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
