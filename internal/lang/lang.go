// Package lang holds the report texts the bot posts to chats.
package lang

// English is the only catalogue shipped; unknown keys render as the key itself.
var English = map[string]string{
	"colon":   ": ",
	"admin":   "Admin",
	"version": "Version",

	"admin_group":   "Group Admin",
	"action":        "Action",
	"status":        "Status",
	"description":   "Description",
	"project":       "Project",
	"group_name":    "Group Name",
	"group_id":      "Group ID",
	"config_show":   "Show Config",
	"config_change": "Change Config",
	"config_create": "Create Config Session",
	"config_commit": "Commit Config",
	"config_button": "Open the link to finish the configuration",
	"config_link":   "Config Link",

	"config_updated":   "Updated",
	"config_unchanged": "Unchanged",
	"config_locked":    "Config is locked, try again later",
	"command_para":     "Bad command parameter",
	"command_type":     "Unknown command type",
	"command_lack":     "Missing command parameter",
	"command_usage":    "Incorrect usage",

	"default": "Default",
	"delete":  "Delete Messages",
	"purge":   "Purge Messages",
	"limit":   "Message Limit",
	"time":    "Time Window",
	"yes":     "Yes",
	"no":      "No",
	"seconds": "s",
}

// Get returns the catalogue text for key.
func Get(key string) string {
	if s, ok := English[key]; ok {
		return s
	}
	return key
}

// YesNo renders a boolean as a catalogue Yes/No.
func YesNo(b bool) string {
	if b {
		return Get("yes")
	}
	return Get("no")
}
