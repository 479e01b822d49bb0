package kernel

// Configuration is entirely compile-time constants: peripheral addresses,
// stack sizes, and slot counts live in const blocks rather than a config
// file or flags.
const (
	// NSlots is N_SLOTS: the fixed number of process table slots, slot 0
	// reserved for idle.
	NSlots = 8

	// StackSize is the fixed per-slot stack region size in bytes. It must
	// be larger than the dispatcher-return-address-plus-register-file
	// prologue (35 bytes) to leave room for a program's own stack use.
	StackSize = 192

	// DefaultPriority is used for the idle program and any auto-start
	// entry that does not specify one.
	DefaultPriority = 128

	// onChipHeapMapSize and externalHeapMapSize size the two heaps' map
	// regions; each map is one-third of its medium (floor), since one map
	// byte (two nibbles) covers two use-area bytes.
	onChipStart       = 0x0100
	onChipSize        = 0x0600
	onChipHeapMapSize = onChipSize / 3

	externalStart       = 0x0000
	externalSize        = 0xFFFF
	externalHeapMapSize = externalSize / 3
)
