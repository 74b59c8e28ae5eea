package catapi

// jsonImage is one element of the image-search response.
//
// Only url is required; the remaining fields are informational and may be
// absent depending on the API tier.
type jsonImage struct {
	ID     string  `json:"id"`
	URL    *string `json:"url"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
}
