package param

// Localize 图片本地化选项
type Localize struct {
	ImagesDir      string `json:"images_dir"`
	Referer        string `json:"referer"`
	UserAgent      string `json:"user_agent"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	MaxRedirects   int    `json:"max_redirects"`
	Concurrency    int    `json:"concurrency"`
}
