package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every record of the model against its struct constraints
// and reports all violations at once.
func Validate(m *Model) error {
	var errs []error
	check := func(kind, key string, rec any) {
		if err := validate.Struct(rec); err != nil {
			errs = append(errs, describe(kind, key, err))
		}
	}

	for _, u := range m.Units {
		check("install_unit", u.Name, u)
	}
	for _, r := range m.Partitions {
		check("partition", r.Key, r)
	}
	for _, r := range m.PartitionRoles {
		check("partition_role", r.Key, r)
	}
	for _, r := range m.PartitionUsers {
		check("partition_user", r.Key, r)
	}
	for _, r := range m.UsersInPartitionRoles {
		check("user_in_partition_role", r.Key, r)
	}
	for _, r := range m.Applications {
		check("application", r.Key, r)
	}
	for _, r := range m.ApplicationRoles {
		check("application_role", r.Key, r)
	}
	for _, r := range m.UsersInApplicationRoles {
		check("user_in_application_role", r.Key, r)
	}
	for _, r := range m.Modules {
		check("module", r.Key, r)
	}
	for _, r := range m.Assemblies {
		check("assembly", r.Key, r)
	}
	for _, r := range m.RoleAssignments {
		check("role_assignment", r.Key, r)
	}
	for _, r := range m.Subscriptions {
		check("subscription", r.Key, r)
	}
	return errors.Join(errs...)
}

// describe turns validator output into a single readable error naming the
// offending record.
func describe(kind, key string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%s %q: %w", kind, key, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%s %q is invalid: %s", kind, key, strings.Join(fields, ", "))
}
