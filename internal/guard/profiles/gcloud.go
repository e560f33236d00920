package profiles

// gcloudProfile classifies read-only operations for the Google Cloud CLI.
// Most entries are "group action" pairs; some are "group resource action"
// triples, so lookup tries the 3-token key before falling back to 2-token.
type gcloudProfile struct{}

func (gcloudProfile) Name() string { return "gcloud" }

func (gcloudProfile) DefaultInjectFlags() []string { return []string{"--format=json"} }

func (gcloudProfile) IsReadOnly(argv []string) bool {
	if len(argv) >= 3 {
		if gcloudReadOnlySet[argv[0]+" "+argv[1]+" "+argv[2]] {
			return true
		}
	}
	if len(argv) >= 2 {
		return gcloudReadOnlySet[argv[0]+" "+argv[1]]
	}
	return false
}

func (gcloudProfile) ReadOnlySubcommands() [][]string {
	return expandFromSet(gcloudReadOnlySet)
}

func (gcloudProfile) ExpandByDefault() bool { return true }

func gcloudGroup(group string, resources []string, actions []string) map[string]bool {
	set := make(map[string]bool)
	for _, resource := range resources {
		for _, action := range actions {
			set[group+" "+resource+" "+action] = true
		}
	}
	return set
}

func gcloudPairs(group string, actions []string) map[string]bool {
	set := make(map[string]bool, len(actions))
	for _, action := range actions {
		set[group+" "+action] = true
	}
	return set
}

var gcloudReadOnlySet = mergeSets(
	gcloudGroup("compute", []string{
		"instances", "disks", "networks", "firewall-rules", "backend-services",
		"forwarding-rules", "target-http-proxies", "url-maps", "health-checks", "regions",
		"zones", "addresses", "routers", "images",
	}, []string{"list", "describe"}),
	gcloudGroup("iam", []string{"roles", "service-accounts"}, []string{"list", "describe"}),
	map[string]bool{"iam list-grantable-roles": true, "iam service-accounts get-iam-policy": true},
	gcloudPairs("projects", []string{"list", "describe"}),
	map[string]bool{
		"storage ls": true, "storage buckets list": true, "storage buckets describe": true,
		"storage objects list": true,
	},
	gcloudGroup("container", []string{"clusters", "node-pools"}, []string{"list", "describe"}),
	gcloudGroup("dns", []string{"managed-zones", "record-sets"}, []string{"list", "describe"}),
	gcloudGroup("sql", []string{"instances", "databases", "users", "backups"}, []string{"list", "describe"}),
	gcloudGroup("pubsub", []string{"topics", "subscriptions"}, []string{"list", "describe"}),
	gcloudPairs("functions", []string{"list", "describe"}),
	gcloudGroup("run", []string{"services", "revisions"}, []string{"list", "describe"}),
	map[string]bool{
		"logging logs list": true, "logging logs read": true, "logging sinks list": true,
	},
)
