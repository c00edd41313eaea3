package shipment

// Evidence groups the opaque store references captured at a lifecycle
// milestone. PhotoRef lands in pickup_photo_ref or delivery_photo_ref
// depending on which transition attaches it; SignatureRef is captured at
// delivery.
type Evidence struct {
	PhotoRef     string
	SignatureRef string
}

// Empty reports whether no evidence reference is present.
func (ev Evidence) Empty() bool {
	return ev.PhotoRef == "" && ev.SignatureRef == ""
}
