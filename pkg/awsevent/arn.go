package awsevent

import (
	"strings"
)

// https://docs.aws.amazon.com/general/latest/gr/aws-arns-and-namespaces.html
//
//	arn:partition:product:region:account:resource:suffix
type Arn struct {
	Partition string
	Product   string
	Region    string
	Account   string
	Resource  string
	Suffix    string
}

// splits to at most 7 parts, so suffix can contain colons (SNS subscription ids,
// auto scaling group names etc.)
func ParseArn(arn string) (Arn, bool) {
	parts := strings.SplitN(arn, ":", 7)
	if len(parts) < 3 || parts[0] != "arn" {
		return Arn{}, false
	}

	part := func(idx int) string {
		if idx < len(parts) {
			return parts[idx]
		}
		return ""
	}

	return Arn{
		Partition: part(1),
		Product:   part(2),
		Region:    part(3),
		Account:   part(4),
		Resource:  part(5),
		Suffix:    part(6),
	}, true
}

func (a Arn) String() string {
	base := "arn:" + a.Partition + ":" + a.Product + ":" + a.Region + ":" + a.Account + ":" + a.Resource
	if a.Suffix != "" {
		return base + ":" + a.Suffix
	}
	return base
}
