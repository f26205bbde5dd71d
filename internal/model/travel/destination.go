package travel

// Destination 景点（只读为主的参考数据）
type Destination struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	Category    string  `json:"category,omitempty"`
	Region      string  `json:"region,omitempty"`
	IsFeatured  bool    `json:"is_featured"`
}
