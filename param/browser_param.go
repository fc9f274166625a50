package param

// Listing 列表页操作选项
type Listing struct {
	URL              string `json:"url"`
	EntrySelector    string `json:"entry_selector"`
	NextPageSelector string `json:"next_page_selector"`
	SettleSeconds    int    `json:"settle_seconds"`
}

// Launch 浏览器启动与详情抓取选项
type Launch struct {
	Headless             bool   `json:"headless"`
	UserAgent            string `json:"user_agent"`
	Referer              string `json:"referer"`
	UserDataDir          string `json:"user_data_dir"`
	Bin                  string `json:"bin"`
	NoSandbox            bool   `json:"no_sandbox"`
	DisableDevShmUsage   bool   `json:"disable_dev_shm_usage"`
	DisableBlinkFeatures string `json:"disable_blink_features"`
	Incognito            bool   `json:"incognito"`
	DetailTimeoutSeconds int    `json:"detail_timeout_seconds"`
	DetailBodySelector   string `json:"detail_body_selector"`
	DetailTitleSelector  string `json:"detail_title_selector"`
}

func (l *Listing) IsValid() bool {
	return l.URL != "" && l.EntrySelector != ""
}
