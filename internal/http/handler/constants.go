package handler

const (
	paramMode       = "mode"
	paramProjID     = "proj-id"
	paramProjName   = "proj-name"
	paramVisibility = "visibility"
	paramOwners     = "owners"
	paramEditors    = "editors"
	paramDelete     = "delete"
	paramRole       = "role"
	paramGlobal     = "global"
	paramSearchTerm = "search-term"
	paramSort       = "sort"

	paramParentImg = "parent-img"
	paramImgName   = "img-name"
	paramNewName   = "new-name"
	paramTags      = "tags"
	paramWithMasks = "with-masks"
	paramTag       = "tag"
	paramMaskName  = "mask-name"
	paramSortImg   = "sort-img"
	paramSortMask  = "sort-mask"
	paramBlobKey   = "blobkey"

	fileFieldImage = "image"

	modeCreate = "create"
	modeUpdate = "update"

	jsonKeyError   = "error"
	jsonKeyMessage = "message"
	jsonKeyURL     = "url"
	jsonKeyBlobKey = "blobkey"

	blobHostPath = "/blob-host"

	fallbackContentType = "application/octet-stream"
)

const (
	msgInvalidMode    = "mode must be create or update"
	msgMissingBlobKey = "blobkey must be provided"
	msgProjectDeleted = "project deleted"
	msgAssetDeleted   = "deleted"
	msgInternalError  = "internal server error"
	msgNotLoggedIn    = "login required"
)
