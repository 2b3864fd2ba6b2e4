package contract

// State is the contract's key/value storage as exposed by the host. A nil
// Get result means the key was never written or was deleted.
type State interface {
	Set(key, value string)
	Get(key string) *string
	Delete(key string)
}
