package models

import "time"

// Article is one news headline returned by the news provider.
type Article struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"url_to_image,omitempty"`
	Date        time.Time `json:"date"`
}
