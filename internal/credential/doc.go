// Package credential holds the credential records stored in a vault and
// their JSON interchange form.
//
// Entries serialize as a JSON array of objects with the keys name, url,
// user, password and notes, in that order. Unset optional fields are
// written as explicit nulls so that null and empty string survive a round
// trip unchanged.
package credential
