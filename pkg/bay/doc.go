// Package bay is a client for the Bayfiles HTTP API (http://api.bayfiles.com/v1).
//
// Accounts and files are local objects that fetch their remote attributes on
// first access and cache them for the lifetime of the object:
//
//	client, err := bay.New(bay.DefaultBaseURL)
//	account := client.NewAccount("login", "password")
//	count, err := account.FilesCount(ctx) // logs in, then one /account/info
//	files, err := account.Files(ctx)      // one /account/files, cached afterwards
//
// Every request goes through a single-use Request which appends the
// "?session=" query parameter, sends exactly one round trip and classifies the
// body by its "error" member. Server-reported failures surface as
// *AccountError or *FileError carrying the server message verbatim; transport
// and decoding failures are returned wrapped and are never retried here.
//
// Account, File and Uploader values are not safe for concurrent use; callers
// must serialize access to a given instance. A Client may be shared.
package bay
