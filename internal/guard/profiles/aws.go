package profiles

// awsProfile classifies read-only operations for the AWS CLI as "service
// action" pairs, e.g. "ec2 describe-instances".
type awsProfile struct{}

func (awsProfile) Name() string { return "aws" }

func (awsProfile) DefaultInjectFlags() []string { return []string{"--output", "json"} }

func (awsProfile) IsReadOnly(argv []string) bool {
	if len(argv) < 2 {
		return false
	}
	return awsReadOnlySet[argv[0]+" "+argv[1]]
}

func (awsProfile) ReadOnlySubcommands() [][]string {
	out := make([][]string, 0, len(awsReadOnlySet))
	for entry := range awsReadOnlySet {
		out = append(out, splitFields(entry))
	}
	return out
}

func (awsProfile) ExpandByDefault() bool { return true }

func awsActions(service string, actions []string) map[string]bool {
	set := make(map[string]bool, len(actions))
	for _, action := range actions {
		set[service+" "+action] = true
	}
	return set
}

func mergeSets(sets ...map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for _, set := range sets {
		for k := range set {
			out[k] = true
		}
	}
	return out
}

var awsReadOnlySet = mergeSets(
	awsActions("ec2", []string{
		"describe-instances", "describe-instance-types", "describe-instance-status",
		"describe-vpcs", "describe-subnets", "describe-security-groups", "describe-key-pairs",
		"describe-images", "describe-snapshots", "describe-volumes", "describe-addresses",
		"describe-availability-zones", "describe-regions", "describe-route-tables",
		"describe-internet-gateways", "describe-nat-gateways", "describe-network-interfaces",
		"describe-network-acls", "describe-load-balancers", "describe-auto-scaling-groups",
		"describe-launch-templates", "describe-tags", "describe-instance-attribute",
		"describe-spot-instance-requests", "describe-reserved-instances", "describe-dhcp-options",
		"describe-vpc-endpoints", "describe-vpc-peering-connections", "describe-transit-gateways",
		"describe-flow-logs",
	}),
	awsActions("s3", []string{"ls", "cp --dryrun"}),
	awsActions("s3api", []string{
		"list-buckets", "list-objects", "list-objects-v2", "list-object-versions",
		"list-multipart-uploads", "get-bucket-acl", "get-bucket-cors", "get-bucket-encryption",
		"get-bucket-lifecycle", "get-bucket-location", "get-bucket-logging",
		"get-bucket-notification-configuration", "get-bucket-policy", "get-bucket-replication",
		"get-bucket-tagging", "get-bucket-versioning", "get-bucket-website", "get-object-acl",
		"get-object-tagging", "head-bucket", "head-object",
	}),
	awsActions("iam", []string{
		"list-users", "list-groups", "list-roles", "list-policies", "list-attached-user-policies",
		"list-attached-group-policies", "list-attached-role-policies", "list-user-policies",
		"list-group-policies", "list-role-policies", "list-groups-for-user", "list-access-keys",
		"list-mfa-devices", "list-virtual-mfa-devices", "list-instance-profiles",
		"list-account-aliases", "get-user", "get-group", "get-role", "get-policy",
		"get-policy-version", "get-account-summary", "get-account-password-policy",
		"get-account-authorization-details",
	}),
	awsActions("sts", []string{"get-caller-identity", "get-session-token", "decode-authorization-message"}),
	awsActions("rds", []string{
		"describe-db-instances", "describe-db-clusters", "describe-db-snapshots",
		"describe-db-cluster-snapshots", "describe-db-subnet-groups", "describe-db-parameter-groups",
		"describe-db-security-groups", "describe-db-engine-versions", "describe-db-log-files",
		"describe-events", "describe-option-groups",
	}),
	awsActions("lambda", []string{
		"list-functions", "list-aliases", "list-event-source-mappings", "list-layers",
		"list-layer-versions", "list-tags", "list-versions-by-function", "get-function",
		"get-function-configuration", "get-function-event-invoke-config", "get-policy",
		"get-account-settings",
	}),
	awsActions("cloudformation", []string{
		"list-stacks", "list-stack-resources", "list-stack-sets", "list-exports",
		"describe-stacks", "describe-stack-events", "describe-stack-resource",
		"describe-stack-resources", "describe-stack-set", "get-template", "get-template-summary",
		"validate-template",
	}),
	awsActions("route53", []string{
		"list-hosted-zones", "list-hosted-zones-by-name", "list-resource-record-sets",
		"list-traffic-policies", "list-health-checks", "get-hosted-zone", "get-health-check",
		"get-account-limit",
	}),
	awsActions("cloudwatch", []string{
		"list-metrics", "list-dashboards", "list-alarms", "list-alarms-for-metric",
		"describe-alarms", "describe-alarm-history", "get-metric-data", "get-metric-statistics",
		"get-metric-widget-image", "get-dashboard",
	}),
	awsActions("logs", []string{
		"describe-log-groups", "describe-log-streams", "describe-subscription-filters",
		"describe-metric-filters", "filter-log-events", "get-log-events", "get-log-group-fields",
		"get-log-record", "get-query-results", "list-tags-log-group", "start-query", "stop-query",
	}),
	awsActions("sns", []string{
		"list-topics", "list-subscriptions", "list-subscriptions-by-topic",
		"list-tags-for-resource", "get-topic-attributes", "get-subscription-attributes",
	}),
	awsActions("sqs", []string{"list-queues", "list-queue-tags", "get-queue-attributes", "get-queue-url"}),
	awsActions("dynamodb", []string{
		"list-tables", "list-tags-of-resource", "list-backups", "list-global-tables",
		"describe-table", "describe-backup", "describe-continuous-backups", "describe-global-table",
		"describe-limits", "describe-time-to-live", "scan", "query", "get-item", "batch-get-item",
	}),
	awsActions("ecs", []string{
		"list-clusters", "list-services", "list-tasks", "list-task-definitions",
		"list-container-instances", "list-account-settings", "list-attributes",
		"list-tags-for-resource", "describe-clusters", "describe-services", "describe-tasks",
		"describe-task-definition", "describe-container-instances",
	}),
	awsActions("eks", []string{
		"list-clusters", "list-nodegroups", "list-fargate-profiles", "list-addons",
		"list-identity-provider-configs", "list-tags-for-resource", "list-updates",
		"describe-cluster", "describe-nodegroup", "describe-fargate-profile", "describe-addon",
		"describe-addon-versions", "describe-update", "describe-identity-provider-config",
	}),
	awsActions("elasticache", []string{
		"describe-cache-clusters", "describe-cache-engine-versions", "describe-cache-parameter-groups",
		"describe-cache-parameters", "describe-cache-security-groups", "describe-cache-subnet-groups",
		"describe-events", "describe-replication-groups", "describe-reserved-cache-nodes",
		"describe-snapshots", "list-tags-for-resource",
	}),
	awsActions("elb", []string{
		"describe-load-balancers", "describe-load-balancer-attributes",
		"describe-load-balancer-policies", "describe-instance-health", "describe-tags",
	}),
	awsActions("elbv2", []string{
		"describe-load-balancers", "describe-load-balancer-attributes", "describe-listeners",
		"describe-listener-certificates", "describe-rules", "describe-target-groups",
		"describe-target-group-attributes", "describe-target-health", "describe-tags",
		"describe-ssl-policies", "describe-account-limits",
	}),
	awsActions("ecr", []string{
		"describe-repositories", "describe-images", "describe-image-scan-findings", "list-images",
		"list-tags-for-resource", "get-authorization-token", "get-repository-policy",
		"get-lifecycle-policy", "get-registry-scanning-configuration",
	}),
	awsActions("secretsmanager", []string{
		"list-secrets", "list-secret-version-ids", "describe-secret", "get-secret-value",
		"get-resource-policy",
	}),
	awsActions("ssm", []string{
		"list-associations", "list-commands", "list-command-invocations", "list-documents",
		"list-inventory-entries", "list-ops-items", "list-parameters", "list-tags-for-resource",
		"describe-instance-information", "describe-parameters", "describe-document",
		"get-parameter", "get-parameters", "get-parameters-by-path", "get-parameter-history",
	}),
)
