package model

// MachineStatus is the availability flag of a laundry machine.
type MachineStatus string

const (
	MachineActive   MachineStatus = "active"
	MachineInactive MachineStatus = "inactive"
)

// Valid reports whether s is one of the known statuses.
func (s MachineStatus) Valid() bool {
	return s == MachineActive || s == MachineInactive
}

// Toggled returns the opposite status.
func (s MachineStatus) Toggled() MachineStatus {
	if s == MachineActive {
		return MachineInactive
	}
	return MachineActive
}

// Machine is a row of `laundry_machines`. The pool is small and fixed;
// machines 1, 2 and 3 are seeded by the schema migration.
type Machine struct {
	ID     uint8         // laundry_machines.id
	Status MachineStatus // laundry_machines.status
}
