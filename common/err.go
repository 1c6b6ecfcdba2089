package common

func Or(l error, r error) error {
	if l != nil {
		return l
	} else {
		return r
	}
}
