package models

import (
	"database/sql"
	"time"
)

type Blog struct {
	ID           string       `db:"id" json:"id"`
	OwnerID      string       `db:"owner_id" json:"-"`
	Name         string       `db:"name" json:"name"`
	Description  string       `db:"description" json:"description"`
	WebsiteURL   string       `db:"website_url" json:"websiteUrl"`
	IsMembership bool         `db:"is_membership" json:"isMembership"`
	IsBanned     bool         `db:"is_banned" json:"-"`
	BanDate      sql.NullTime `db:"ban_date" json:"-"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
}

type Post struct {
	ID        string    `db:"id" json:"id"`
	BlogID    string    `db:"blog_id" json:"blogId"`
	OwnerID   string    `db:"owner_id" json:"-"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
