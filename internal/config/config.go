package config

// Config 进程配置,来源优先级: 命令行flag > 环境变量 > config.yaml > 默认值
type Config struct {
	Site struct {
		BaseURL    string `mapstructure:"base_url"`
		ListingURL string `mapstructure:"listing_url"`
		UserAgent  string `mapstructure:"user_agent"`
		Referer    string `mapstructure:"referer"`
		Selectors  struct {
			Entry       string `mapstructure:"entry"`
			Title       string `mapstructure:"title"`
			PublishTime string `mapstructure:"publish_time"`
			Category    string `mapstructure:"category"`
			Author      string `mapstructure:"author"`
			NextPage    string `mapstructure:"next_page"`
			DetailBody  string `mapstructure:"detail_body"`
			DetailTitle string `mapstructure:"detail_title"`
		} `mapstructure:"selectors"`
	} `mapstructure:"site"`

	Crawler struct {
		Concurrency          int     `mapstructure:"concurrency"`
		MaxPages             int     `mapstructure:"max_pages"`
		Retries              int     `mapstructure:"retries"`
		RetryBaseDelaySecond int     `mapstructure:"retry_base_delay_seconds"`
		BoundaryMinPages     int     `mapstructure:"boundary_min_pages"`
		RateLimit            float64 `mapstructure:"rate_limit"`
		RateBurst            int     `mapstructure:"rate_burst"`
		DetailTimeoutSecond  int     `mapstructure:"detail_timeout_seconds"`
		StartDate            string  `mapstructure:"start_date"`
		EndDate              string  `mapstructure:"end_date"`
		TargetDate           string  `mapstructure:"target_date"`
		OutputDir            string  `mapstructure:"output_dir"`
		LocalizeImages       bool    `mapstructure:"localize_images"`
	} `mapstructure:"crawler"`

	Browser struct {
		Engine               string `mapstructure:"engine"`
		Headless             bool   `mapstructure:"headless"`
		UserDataDir          string `mapstructure:"user_data_dir"`
		Bin                  string `mapstructure:"bin"`
		NoSandbox            bool   `mapstructure:"no_sandbox"`
		DisableDevShmUsage   bool   `mapstructure:"disable_dev_shm_usage"`
		DisableBlinkFeatures string `mapstructure:"disable_blink_features"`
		Incognito            bool   `mapstructure:"incognito"`
		PageSettleSeconds    int    `mapstructure:"page_settle_seconds"`
	} `mapstructure:"browser"`

	Fetcher struct {
		Mode string `mapstructure:"mode"`
	} `mapstructure:"fetcher"`

	Images struct {
		TimeoutSecond int `mapstructure:"timeout_seconds"`
		MaxRedirects  int `mapstructure:"max_redirects"`
	} `mapstructure:"images"`

	Elasticsearch struct {
		Enabled  bool   `mapstructure:"enabled"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		Address  string `mapstructure:"address"`
	} `mapstructure:"elasticsearch"`

	Embedder struct {
		Enabled   bool   `mapstructure:"enabled"`
		Host      string `mapstructure:"host"`
		Port      int    `mapstructure:"port"`
		Model     string `mapstructure:"model"`
		BatchSize int    `mapstructure:"batch_size"`
	} `mapstructure:"embedder"`

	Summary struct {
		Enabled bool   `mapstructure:"enabled"`
		Host    string `mapstructure:"host"`
		Port    int    `mapstructure:"port"`
		Model   string `mapstructure:"model"`
	} `mapstructure:"summary"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}
