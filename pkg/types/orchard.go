package types

// Orchard is a managed orchard with its trees.
type Orchard struct {
	ID        int     `json:"id,omitempty"`
	Name      string  `json:"name"`
	Location  string  `json:"location"`
	Size      float64 `json:"size"`
	Owner     string  `json:"owner,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
	Trees     []Tree  `json:"trees,omitempty"`
}

// Tree is a single tree belonging to an orchard.
type Tree struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Species     string `json:"species"`
	Age         int    `json:"age"`
	Location    string `json:"location,omitempty"`
	PlantedDate string `json:"planted_date,omitempty"`
	Orchard     int    `json:"orchard"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// BulkCreateTreesRequest is the body of POST /api/bulk-create-trees/.
type BulkCreateTreesRequest struct {
	Trees []Tree `json:"trees"`
}
