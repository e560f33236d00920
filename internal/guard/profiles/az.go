package profiles

// azProfile classifies read-only operations for the Azure CLI. Entries are
// "group [resource] action" paths up to 3 tokens; lookup tries the 3-token
// key before falling back to 2-token.
type azProfile struct{}

func (azProfile) Name() string { return "az" }

func (azProfile) DefaultInjectFlags() []string { return []string{"--output", "json"} }

func (azProfile) IsReadOnly(argv []string) bool {
	if len(argv) >= 3 {
		if azReadOnlySet[argv[0]+" "+argv[1]+" "+argv[2]] {
			return true
		}
	}
	if len(argv) >= 2 {
		return azReadOnlySet[argv[0]+" "+argv[1]]
	}
	return false
}

func (azProfile) ReadOnlySubcommands() [][]string {
	return expandFromSet(azReadOnlySet)
}

func (azProfile) ExpandByDefault() bool { return true }

func azPairs(group string, actions []string) map[string]bool {
	set := make(map[string]bool, len(actions))
	for _, action := range actions {
		set[group+" "+action] = true
	}
	return set
}

func azTriples(group string, resources []string, actions []string) map[string]bool {
	set := make(map[string]bool)
	for _, resource := range resources {
		for _, action := range actions {
			set[group+" "+resource+" "+action] = true
		}
	}
	return set
}

var azReadOnlySet = mergeSets(
	azPairs("account", []string{"list", "show", "list-locations", "get-access-token"}),
	azPairs("group", []string{"list", "show"}),
	azPairs("vm", []string{"list", "show", "get-instance-view", "list-sizes"}),
	azPairs("vmss", []string{"list", "show"}),
	azTriples("network", []string{
		"vnet", "nsg", "nic", "public-ip", "lb", "application-gateway", "route-table",
		"dns-zone", "dns-record-set",
	}, []string{"list", "show"}),
	azPairs("storage account", []string{"list", "show"}),
	map[string]bool{"storage blob list": true, "storage container list": true},
	azPairs("aks", []string{"list", "show", "get-credentials"}),
	azPairs("acr", []string{"list", "show"}),
	map[string]bool{"acr repository list": true, "acr repository show-tags": true},
	azPairs("webapp", []string{"list", "show"}),
	azPairs("functionapp", []string{"list", "show"}),
	azTriples("ad", []string{"user", "group", "sp", "app"}, []string{"list", "show"}),
	map[string]bool{"role definition list": true, "role assignment list": true},
	azPairs("keyvault", []string{"list", "show"}),
	azTriples("keyvault", []string{"secret", "key", "certificate"}, []string{"list"}),
	map[string]bool{
		"monitor metrics list": true, "monitor activity-log list": true,
		"monitor log-analytics-workspace list": true,
	},
	azPairs("resource", []string{"list", "show"}),
	azTriples("sql", []string{"server", "db"}, []string{"list", "show"}),
	azPairs("cosmosdb", []string{"list", "show"}),
)
