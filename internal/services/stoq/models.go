package stoq

// PlanInput is the selling_plan body for create and update calls. Pointer
// fields are omitted when unset so updates only touch the mapped columns.
type PlanInput struct {
	Name                      string `json:"name"`
	InternalName              string `json:"internal_name"`
	DeliveryAt                string `json:"delivery_at,omitempty"`
	PricingAmount             *int   `json:"pricing_amount,omitempty"`
	ShippingText              string `json:"shipping_text,omitempty"`
	Enabled                   *bool  `json:"enabled,omitempty"`
	DeliveryType              string `json:"delivery_type,omitempty"`
	PricingType               string `json:"pricing_type,omitempty"`
	PreorderButtonText        string `json:"preorder_button_text,omitempty"`
	PreorderButtonDescription string `json:"preorder_button_description,omitempty"`
	DiscountText              string `json:"discount_text,omitempty"`
	PreorderTags              string `json:"preorder_tags,omitempty"`
	ProductVariantsSource     string `json:"product_variants_source,omitempty"`
	MarketsEnabled            *bool  `json:"markets_enabled,omitempty"`
	ShowFulfillmentTimeline   *bool  `json:"show_fulfillment_timeline,omitempty"`
}

// NewPlanInput builds the create payload: the mapped offer fields plus the
// fixed preorder plan defaults.
func NewPlanInput(internalName, shippingText string, discountAmount int) PlanInput {
	enabled := true
	marketsEnabled := true
	showTimeline := true
	return PlanInput{
		Name:                      internalName,
		InternalName:              internalName,
		DeliveryAt:                shippingText,
		PricingAmount:             &discountAmount,
		ShippingText:              shippingText,
		Enabled:                   &enabled,
		DeliveryType:              "asap",
		PricingType:               "fixed_amount",
		PreorderButtonText:        "Preorder",
		PreorderButtonDescription: "Note: This is a preorder. Items will ship based on the estimated delivery date.",
		DiscountText:              "Save {{ discount }}",
		PreorderTags:              "STOQ-preorder",
		ProductVariantsSource:     "custom",
		MarketsEnabled:            &marketsEnabled,
		ShowFulfillmentTimeline:   &showTimeline,
	}
}

// UpdatePlanInput builds the update payload, which only refreshes the
// mapped offer fields.
func UpdatePlanInput(internalName, shippingText string, discountAmount int) PlanInput {
	return PlanInput{
		Name:          internalName,
		InternalName:  internalName,
		PricingAmount: &discountAmount,
		ShippingText:  shippingText,
	}
}

type planEnvelope struct {
	SellingPlan PlanInput `json:"selling_plan"`
}

type planResponse struct {
	ID int64 `json:"id"`
}

type variantIDsPayload struct {
	ShopifyVariantIDs []int64 `json:"shopify_variant_ids"`
}

type productVariantsResponse struct {
	ProductVariants []struct {
		ShopifyVariantID int64 `json:"shopify_variant_id"`
	} `json:"product_variants"`
}

type validationResponse struct {
	ExistingVariants []int64 `json:"existing_variants"`
}

// AddResult summarizes a chunked add-variants call. Skipped ids failed
// validation individually even after bisection, typically deleted or
// already-attached variants.
type AddResult struct {
	Requested int
	Added     int
	Skipped   []int64
}

// RemoveResult summarizes a chunked remove-variants call.
type RemoveResult struct {
	Requested int
	Removed   int
	Failed    []int64
}
