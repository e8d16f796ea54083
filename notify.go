package main

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// PostReportToSlack posts the run summary to the configured report
// channel. A missing Slack config is not an error: the caller decides
// whether delivery matters.
func PostReportToSlack(cfg Config, summary string) error {
	if !cfg.SlackConfigured() {
		log.Println("Slack delivery skipped (slack_bot_token or report_channel_id not set)")
		return nil
	}

	api := slack.New(cfg.SlackBotToken)
	_, _, err := api.PostMessage(cfg.ReportChannelID, slack.MsgOptionText(summary, false))
	if err != nil {
		return fmt.Errorf("posting report to %s: %w", cfg.ReportChannelID, err)
	}
	log.Printf("Posted grooming report to %s", cfg.ReportChannelID)
	return nil
}
