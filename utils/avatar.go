package utils

import "net/url"

// DefaultAvatar builds a DiceBear initials avatar for customers who
// register without a photo. 256px PNG, gradient background.
func DefaultAvatar(fullName string) string {
	seed := url.QueryEscape(fullName)
	return "https://api.dicebear.com/7.x/initials/png?seed=" + seed +
		"&size=256&backgroundType=gradientLinear"
}
