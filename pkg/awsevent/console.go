package awsevent

import (
	"strings"
)

const consoleBaseUrl = "https://console.aws.amazon.com"

// adds region query param unless path already specifies one:
//
//	("eu-west-1", "/ec2/home#goal:7") => "https://console.aws.amazon.com/ec2/home?region=eu-west-1#goal:7"
func ConsoleUrl(region string, path string) string {
	if region == "" || strings.Contains(path, "region=") {
		return consoleBaseUrl + path
	}

	fragment := ""
	if idx := strings.IndexByte(path, '#'); idx != -1 {
		path, fragment = path[:idx], path[idx:]
	}

	separator := "?"
	if strings.Contains(path, "?") {
		separator = "&"
	}

	return consoleBaseUrl + path + separator + "region=" + region + fragment
}
