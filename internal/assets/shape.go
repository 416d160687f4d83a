package assets

import (
	"encoding/json"
	"strings"

	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/ipfs"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/models"
	"github.com/Superlee-Agent/radutverse-betatest-v2/internal/storyapi"
)

const untitled = "Untitled Asset"

var (
	titlePaths = []string{"title", "ipaMetadata.title", "metadata.title", "nftMetadata.name", "name"}
	imagePaths = []string{
		"mediaUrl", "imageUrl",
		"ipaMetadata.image", "ipaMetadata.imageUrl",
		"nftMetadata.imageUrl", "nftMetadata.image",
		"metadata.imageUrl", "metadata.image",
		"tokenMetadata.image",
	}
	creatorPaths = []string{"creator", "ipaMetadata.creator", "nftMetadata.creator", "metadata.creator"}
)

// Shape copies every raw field of a and sets the normalized display fields
// over them.
func Shape(a storyapi.Asset) models.Asset {
	out := make(models.Asset, len(a)+8)
	for k, v := range a {
		out[k] = v
	}

	title := a.String(titlePaths...)
	if title == "" {
		title = untitled
	}
	out["title"] = title

	if img := a.String(imagePaths...); img != "" {
		if strings.HasPrefix(img, "ipfs://") {
			img = ipfs.ToGatewayURL(img)
		}
		out["mediaUrl"] = img
		out["thumbnailUrl"] = img
	} else {
		out["mediaUrl"] = nil
		out["thumbnailUrl"] = nil
	}

	if v := a.String("mediaType", "metadata.mediaType"); v != "" {
		out["mediaType"] = v
	}
	if v := a.String("ownerAddress", "ipAccountOwner"); v != "" {
		out["ownerAddress"] = v
	}
	if v, ok := firstRaw(a, "registrationDate", "blockTimestamp"); ok {
		out["registrationDate"] = v
	}

	if v := a.String(creatorPaths...); v != "" {
		out["creator"] = v
	} else {
		out["creator"] = nil
	}

	out["parentsCount"] = a.ParentsCount()
	return out
}

// firstRaw returns the first truthy value among paths in its original JSON form.
func firstRaw(a storyapi.Asset, paths ...string) (json.RawMessage, bool) {
	for _, p := range paths {
		if r := a.Get(p); storyapi.Truthy(r) {
			return json.RawMessage(r.Raw), true
		}
	}
	return nil, false
}
