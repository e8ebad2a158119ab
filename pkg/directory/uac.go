package directory

// AccountControl is the userAccountControl bitmask of an Active Directory
// account. Only the bits this system manipulates are named; every other bit
// must survive a read-modify-write untouched.
type AccountControl uint32

const (
	// AccountDisable marks the account as disabled (UF_ACCOUNTDISABLE).
	AccountDisable AccountControl = 0x0002
	// NormalAccount is the default account type bit (UF_NORMAL_ACCOUNT).
	NormalAccount AccountControl = 0x0200
	// DontExpirePassword exempts the credential from domain expiry policy
	// (UF_DONT_EXPIRE_PASSWD).
	DontExpirePassword AccountControl = 0x10000
)

// Disabled reports the state of the disable bit.
func (a AccountControl) Disabled() bool {
	return a&AccountDisable != 0
}

// WithDisabled flips only the disable bit, preserving all others.
func (a AccountControl) WithDisabled(disabled bool) AccountControl {
	if disabled {
		return a | AccountDisable
	}
	return a &^ AccountDisable
}
