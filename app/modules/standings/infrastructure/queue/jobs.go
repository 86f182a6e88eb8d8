package standingsqueue

// PublishResultsJob uploads the results artifacts. The worker renders the
// standings as they are when it runs, so a late job publishes fresh data.
type PublishResultsJob struct {
	Reason string `json:"reason"`
}

func (PublishResultsJob) Kind() string { return "publish_results" }
