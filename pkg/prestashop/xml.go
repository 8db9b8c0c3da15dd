package prestashop

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

const xlinkNS = "http://www.w3.org/1999/xlink"

// langValue is one localized value of a multi-language field.
type langValue struct {
	ID    string `xml:"id,attr"`
	Value string `xml:",cdata"`
}

// langField is a multi-language field in a Webservice payload.
type langField struct {
	Language []langValue `xml:"language"`
}

func newLangField(langID int, value string) langField {
	return langField{Language: []langValue{{ID: strconv.Itoa(langID), Value: value}}}
}

// cmsBody mirrors the content_management_system resource fields the
// migration writes.
type cmsBody struct {
	ID              *int      `xml:"id,omitempty"`
	CategoryID      int       `xml:"id_cms_category"`
	Active          int       `xml:"active"`
	Indexation      int       `xml:"indexation"`
	MetaTitle       langField `xml:"meta_title"`
	MetaDescription langField `xml:"meta_description"`
	MetaKeywords    langField `xml:"meta_keywords"`
	Content         langField `xml:"content"`
	LinkRewrite     langField `xml:"link_rewrite"`
}

// cmsEnvelope is the <prestashop> wrapper for CMS payloads.
type cmsEnvelope struct {
	XMLName xml.Name `xml:"prestashop"`
	Xlink   string   `xml:"xmlns:xlink,attr"`
	CMS     cmsBody  `xml:"content_management_system"`
}

// cmsResponse extracts the resource ID from a create response.
type cmsResponse struct {
	XMLName xml.Name `xml:"prestashop"`
	CMS     struct {
		ID string `xml:"id"`
	} `xml:"content_management_system"`
}

// node is a generic XML tree used for read-modify-write updates of
// resources whose full schema we do not model (products).
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []node     `xml:",any"`
}

func (n *node) child(name string) *node {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return &n.Children[i]
		}
	}
	return nil
}

// removeChild drops the first child with the given local name.
func (n *node) removeChild(name string) {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return
		}
	}
}

// setLangValue sets the value of a multi-language field for one language
// ID, creating the field or language entry when absent.
func (n *node) setLangValue(field string, langID int, value string) {
	want := strconv.Itoa(langID)

	f := n.child(field)
	if f == nil {
		n.Children = append(n.Children, node{
			XMLName: xml.Name{Local: field},
			Children: []node{{
				XMLName: xml.Name{Local: "language"},
				Attrs:   []xml.Attr{{Name: xml.Name{Local: "id"}, Value: want}},
				Content: value,
			}},
		})
		return
	}

	for i := range f.Children {
		lang := &f.Children[i]
		if lang.XMLName.Local != "language" {
			continue
		}
		for _, a := range lang.Attrs {
			if a.Name.Local == "id" && a.Value == want {
				lang.Content = value
				lang.Children = nil
				return
			}
		}
	}

	f.Children = append(f.Children, node{
		XMLName: xml.Name{Local: "language"},
		Attrs:   []xml.Attr{{Name: xml.Name{Local: "id"}, Value: want}},
		Content: value,
	})
}

// readOnlyProductFields cannot appear in a product PUT payload; the
// Webservice rejects the whole request when they do.
var readOnlyProductFields = []string{
	"manufacturer_name",
	"quantity",
	"position_in_category",
}

// prepareProductUpdate mutates a fetched product tree in place: write
// the description and SEO fields for the given language and strip the
// read-only fields.
func prepareProductUpdate(root *node, langID int, description, metaTitle, metaDescription string) error {
	product := root.child("product")
	if product == nil {
		return fmt.Errorf("response has no product element")
	}

	for _, field := range readOnlyProductFields {
		product.removeChild(field)
	}

	product.setLangValue("description", langID, description)
	product.setLangValue("meta_title", langID, metaTitle)
	product.setLangValue("meta_description", langID, metaDescription)
	return nil
}
