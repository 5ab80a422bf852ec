package apptest

var parsedXMLBodyMimeTypes = []string{
	"application/xml",
	"application/soap+xml",
	"text/xml",
}

var parsedFormBodyMimeTypes = []string{
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

var parsedJSONBodyMimeTypes = []string{
	"application/json",
}

var parsedBodyMimeTypes = merge(parsedXMLBodyMimeTypes, parsedJSONBodyMimeTypes, parsedFormBodyMimeTypes)

type bodyKind int

const (
	bodyUnknown bodyKind = iota
	bodyJSON
	bodyForm
	bodyXML
)

// classifyBody maps a Content-Type header value to the parser the request
// body is decoded with. Parameters such as charset are ignored.
func classifyBody(contentType string) bodyKind {
	mt := mediaType(contentType)
	if !in(mt, parsedBodyMimeTypes) {
		return bodyUnknown
	}

	checker := func(supportedContentType string) bool {
		return supportedContentType == mt
	}

	switch {
	case some(parsedJSONBodyMimeTypes, checker):
		return bodyJSON
	case some(parsedFormBodyMimeTypes, checker):
		return bodyForm
	case some(parsedXMLBodyMimeTypes, checker):
		return bodyXML
	}
	return bodyUnknown
}
