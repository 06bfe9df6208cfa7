package status

// Persisted bit tables. Append only.
var (
	User         = Layout{Entity: "user", Bits: []string{"online", "removed", "banned"}}
	Token        = Layout{Entity: "token", Bits: []string{"valid", "reset_password", "login"}}
	Notification = Layout{Entity: "notification", Bits: []string{"removed", "seen"}}
)

func init() {
	for _, l := range []Layout{User, Token, Notification} {
		seen := make(map[string]struct{}, len(l.Bits))
		for _, b := range l.Bits {
			if _, dup := seen[b]; dup {
				panic("status: duplicate flag " + b + " in layout " + l.Entity)
			}
			seen[b] = struct{}{}
		}
	}
}
