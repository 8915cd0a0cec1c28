package httpapi

const (
	ActionRunAll      = "run_all"
	ActionRunSpecific = "run_specific"
	ActionEnable      = "enable_crawler"
	ActionDisable     = "disable_crawler"
)

type TriggerRequest struct {
	Action      string `json:"action"`
	CrawlerName string `json:"crawlerName"`
}
