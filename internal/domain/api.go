package domain

// CreateBoardRequest is the body of POST /api/v1/boards.
type CreateBoardRequest struct {
	Title string `json:"title" binding:"max=200"`
}

// ElementsRequest is the body of a batch element update.
type ElementsRequest struct {
	Elements []Element `json:"elements" binding:"required,min=1"`
}

// DeleteElementsRequest is the body of a batch element delete.
type DeleteElementsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

// DeleteElementsResponse reports how many of the requested ids existed.
type DeleteElementsResponse struct {
	Deleted int `json:"deleted"`
}

// ListBoardsRequest holds the pagination query of GET /api/v1/boards.
type ListBoardsRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// ListBoardsResponse is one page of boards.
type ListBoardsResponse struct {
	Boards     []Board `json:"boards"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}
