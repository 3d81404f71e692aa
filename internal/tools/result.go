package tools

import (
	"fmt"
	"sort"
	"strings"
)

// String renders the result in a stable key-sorted form suitable for
// embedding into a reply.
func (r Result) String() string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", key, r[key]))
	}
	return strings.Join(parts, "; ")
}

// FormatScheduleResult renders a schedule pseudo-tool result as
// user-facing text.
func FormatScheduleResult(result Result) string {
	status, _ := result["status"].(string)

	switch {
	case status == "scheduled":
		return fmt.Sprintf("Scheduled. Job id: %v. Next run: %v.", result["job_id"], result["next_run"])

	case status == "ok" && result["jobs"] != nil:
		jobs, _ := result["jobs"].([]map[string]any)
		if len(jobs) == 0 {
			return "No schedules found."
		}
		lines := make([]string, 0, len(jobs))
		for _, job := range jobs {
			lines = append(lines, fmt.Sprintf("- %v | %v | next: %v | %v",
				job["job_id"], job["schedule_type"], job["next_run"], job["task"]))
		}
		return "Schedules:\n" + strings.Join(lines, "\n")

	case status == "ok" && result["job_id"] != nil:
		return fmt.Sprintf("Removed schedule %v.", result["job_id"])

	case status == "not_found" && result["job_id"] != nil:
		return fmt.Sprintf("Schedule not found: %v.", result["job_id"])
	}
	return "Schedule updated."
}
