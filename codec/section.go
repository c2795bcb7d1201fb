package codec

import "strconv"

// Section identifies one of the sections of an AMQP 1.0 message, in wire order.
type Section uint8

const (
	SectionHeader Section = iota
	SectionDeliveryAnnotations
	SectionMessageAnnotations
	SectionProperties
	SectionApplicationProperties
	SectionBody
	SectionFooter

	sectionCount
)

var sectionNames = [sectionCount]string{
	"header",
	"delivery-annotations",
	"message-annotations",
	"properties",
	"application-properties",
	"body",
	"footer",
}

func (s Section) String() string {
	if s < sectionCount {
		return sectionNames[s]
	}
	return "Section(" + strconv.Itoa(int(s)) + ")"
}

// descriptor codes of the message sections (amqp:*:* 0x00000000:0x00000070..78)
const (
	descHeader                uint64 = 0x70
	descDeliveryAnnotations   uint64 = 0x71
	descMessageAnnotations    uint64 = 0x72
	descProperties            uint64 = 0x73
	descApplicationProperties uint64 = 0x74
	descData                  uint64 = 0x75
	descSequence              uint64 = 0x76
	descValue                 uint64 = 0x77
	descFooter                uint64 = 0x78
)

var symbolicDescriptors = map[string]uint64{
	"amqp:header:list":                descHeader,
	"amqp:delivery-annotations:map":   descDeliveryAnnotations,
	"amqp:message-annotations:map":    descMessageAnnotations,
	"amqp:properties:list":            descProperties,
	"amqp:application-properties:map": descApplicationProperties,
	"amqp:data:binary":                descData,
	"amqp:amqp-sequence:list":         descSequence,
	"amqp:amqp-value:*":               descValue,
	"amqp:footer:map":                 descFooter,
}

func sectionOf(desc uint64) (Section, bool) {
	switch desc {
	case descHeader:
		return SectionHeader, true
	case descDeliveryAnnotations:
		return SectionDeliveryAnnotations, true
	case descMessageAnnotations:
		return SectionMessageAnnotations, true
	case descProperties:
		return SectionProperties, true
	case descApplicationProperties:
		return SectionApplicationProperties, true
	case descData, descSequence, descValue:
		return SectionBody, true
	case descFooter:
		return SectionFooter, true
	}
	return 0, false
}
