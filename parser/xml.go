package parser

import (
	"github.com/clbanning/mxj"
)

// ParseXML decodes an XML document into a map keyed by the root element.
// Attributes are prefixed with "-" and element text is stored under "#text".
func ParseXML(xmlText string) (map[string]interface{}, error) {
	data, err := mxj.NewMapXml([]byte(xmlText))
	if err != nil {
		return nil, err
	}
	return data.Old(), nil
}
