package entity

// Kind identifies the type of a catalog entity.
type Kind int

const (
	KindPartition Kind = iota + 1
	KindPartitionRole
	KindPartitionUser
	KindUserInPartitionRole
	KindApplication
	KindApplicationRole
	KindUserInApplicationRole
	KindModule
	KindAssembly
	KindRoleAssignment
	KindSubscription
)

var kindNames = map[Kind]string{
	KindPartition:             "partition",
	KindPartitionRole:         "partition_role",
	KindPartitionUser:         "partition_user",
	KindUserInPartitionRole:   "user_in_partition_role",
	KindApplication:           "application",
	KindApplicationRole:       "application_role",
	KindUserInApplicationRole: "user_in_application_role",
	KindModule:                "module",
	KindAssembly:              "assembly",
	KindRoleAssignment:        "role_assignment",
	KindSubscription:          "subscription",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}
