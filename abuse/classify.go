// Abuse escalation for delegated moderation actions: threshold classification of trailing action counts, and ban enforcement when the ban tier is reached.
package abuse

import (
	"fmt"
)

const (
	HourlyWarningThreshold     = 5
	HourlyLastWarningThreshold = 6
	HourlyBanThreshold         = 7

	DailyWarningThreshold     = 10
	DailyLastWarningThreshold = 11
	DailyBanThreshold         = 12
)

type Tier int

const (
	TierNone Tier = iota
	TierWarning
	TierLastWarning
	TierBan
)

func (t Tier) String() string {
	switch t {
	case TierWarning:
		return "warning"
	case TierLastWarning:
		return "last-warning"
	case TierBan:
		return "ban"
	default:
		return "none"
	}
}

// User-facing escalation message. Count and Threshold are the figures cited in the text (zero for the ban tier).
type Message struct {
	Tier      Tier
	Count     int
	Threshold int
	Text      string
}

const BannedText = "You have been banned for excessive mod actions use."

// Maps trailing counts to an escalation message. Ban takes priority over last warning, which takes priority over warning; within a tier the hourly figure is cited when both qualify. Returns false below both warning thresholds.
func Classify(hourlyCount, dailyCount int) (Message, bool) {
	if hourlyCount >= HourlyBanThreshold || dailyCount >= DailyBanThreshold {
		return Message{Tier: TierBan, Text: BannedText}, true
	}
	if hourlyCount == HourlyLastWarningThreshold || dailyCount == DailyLastWarningThreshold {
		count, threshold := dailyCount, DailyBanThreshold
		if hourlyCount == HourlyLastWarningThreshold {
			count, threshold = hourlyCount, HourlyBanThreshold
		}
		return Message{
			Tier:      TierLastWarning,
			Count:     count,
			Threshold: threshold,
			Text:      fmt.Sprintf("Last Warning! Excessive mod actions will trigger a ban. (%d of %d)", count, threshold),
		}, true
	}
	if hourlyCount >= HourlyWarningThreshold || dailyCount >= DailyWarningThreshold {
		count, threshold := dailyCount, DailyBanThreshold
		if hourlyCount >= HourlyWarningThreshold {
			count, threshold = hourlyCount, HourlyBanThreshold
		}
		return Message{
			Tier:      TierWarning,
			Count:     count,
			Threshold: threshold,
			Text:      fmt.Sprintf("Warning! Excessive mod actions will trigger a ban. (%d of %d)", count, threshold),
		}, true
	}
	return Message{}, false
}

// Reports which ban thresholds the counts reach.
func ExceedsBan(hourlyCount, dailyCount int) (hourly, daily bool) {
	return hourlyCount >= HourlyBanThreshold, dailyCount >= DailyBanThreshold
}
