package server

import (
	"docshare/internal/http/handlers/docs"
	"docshare/internal/http/handlers/grants"
	"docshare/internal/http/handlers/session"
	"docshare/internal/http/handlers/shares"
	"docshare/internal/http/handlers/user"
	"docshare/internal/http/middleware"
)

type AuthService interface {
	user.UserAdder
	session.SessionOpener
	session.SessionDeleter
	middleware.SessionResolver
}

type DocumentService interface {
	docs.DocumentUploader
	docs.DocumentProvider
	docs.DocumentDownloader
	docs.DocumentEditor
	docs.DocumentDeleter
	docs.AccessInspector
}

type SharingService interface {
	shares.ShareManager
	grants.GrantManager
}
