package book

// Authorize reports whether actingUserID owns b. It must run before any
// mutation or disclosure of a book. An empty user id never authorizes.
func Authorize(b Book, actingUserID string) error {
	if actingUserID == "" || b.OwnerID != actingUserID {
		return ErrNotAuthorized
	}
	return nil
}
