package agents

import (
	"fmt"
	"strings"

	"fleetdesk/internal/domain"
	"fleetdesk/internal/rules"
)

const promptPreamble = `You extract structured fields from a car rental booking request.
Return only fields you can support from the content; omit anything you cannot find.
Copy values as written. Do not invent, infer, or reformat.`

// Chain builds the ordered extraction stages. Order matters: later stages
// see everything earlier stages accumulated.
func Chain(tables *rules.Tables) []*Agent {
	return []*Agent{
		corporateBookerAgent(),
		travelerAgent(),
		locationTimeAgent(tables),
		dutyVehicleAgent(tables),
		transportRefsAgent(),
		requirementsAgent(),
	}
}

func corporateBookerAgent() *Agent {
	fields := []string{
		domain.FieldCustomer,
		domain.FieldBookerName,
		domain.FieldBookerPhone,
		domain.FieldBookerEmail,
	}
	return &Agent{
		name:   "corporate_booker",
		stage:  domain.StageCorporateBooker,
		fields: fields,
		instructions: promptPreamble + `
Extract the corporate customer and the person who BOOKED the ride (not the traveler).
Fields: ` + fieldList(fields) + `.
The booker is identified by labels such as "Booked by", "Requested by", "Requestor",
or is the email sender. Never take a value labeled as passenger, guest, or traveler.
customer is the company or organization the booking is for.`,
		fallback: func(s Slice) map[string]string {
			out := map[string]string{}
			if v := roleScoped(s, []string{"company", "client", "organization", "organisation", "corporate", "customer"}, nil); v != "" {
				out[domain.FieldCustomer] = v
			} else if m := companyRe.FindStringSubmatch(s.Text); m != nil {
				out[domain.FieldCustomer] = strings.TrimSpace(m[1])
			}
			if v := roleScoped(s, bookerLabels, travelerLabels); v != "" {
				out[domain.FieldBookerName] = v
			}
			if v := firstMatch(s, emailRe, travelerLabels); v != "" {
				out[domain.FieldBookerEmail] = v
			} else if s.Sender != "" {
				out[domain.FieldBookerEmail] = s.Sender
			}
			if v := firstMatch(s, phoneRe, travelerLabels); v != "" {
				out[domain.FieldBookerPhone] = v
			}
			return out
		},
	}
}

func travelerAgent() *Agent {
	fields := []string{
		domain.FieldPassengerName,
		domain.FieldPassengerPhone,
		domain.FieldPassengerEmail,
	}
	return &Agent{
		name:   "traveler_identity",
		stage:  domain.StageTravelerIdentity,
		fields: fields,
		instructions: promptPreamble + `
Extract the person who will TRAVEL in the vehicle (not the booker).
Fields: ` + fieldList(fields) + `.
The traveler is identified by labels such as "Passenger", "Guest", "Pax", or "Traveller".
Never take a value labeled as booker, requestor, or "booked by". If the request says
the booker is traveling themselves, copy the booker values already extracted.
Keep honorifics (Mr., Ms., Mrs., Smt.) as part of the name.`,
		fallback: func(s Slice) map[string]string {
			out := map[string]string{}
			if v := roleScoped(s, travelerLabels, bookerLabels); v != "" {
				// A labeled block may carry name, phone and email together.
				name := v
				if m := emailRe.FindString(v); m != "" {
					out[domain.FieldPassengerEmail] = m
					name = strings.Replace(name, m, "", 1)
				}
				if m := phoneRe.FindString(v); m != "" {
					out[domain.FieldPassengerPhone] = m
					name = strings.Replace(name, m, "", 1)
				}
				name = strings.Trim(strings.TrimSpace(name), ",-|")
				if name != "" {
					out[domain.FieldPassengerName] = strings.TrimSpace(name)
				}
			}
			if _, ok := out[domain.FieldPassengerPhone]; !ok {
				if v := firstMatch(s, phoneRe, bookerLabels); v != "" {
					out[domain.FieldPassengerPhone] = v
				}
			}
			return out
		},
	}
}

func locationTimeAgent(tables *rules.Tables) *Agent {
	fields := []string{
		domain.FieldFromLocation,
		domain.FieldToLocation,
		domain.FieldStartDate,
		domain.FieldEndDate,
		domain.FieldReportingTime,
		domain.FieldReportingAddress,
		domain.FieldDropAddress,
		domain.FieldDispatchCenter,
	}
	return &Agent{
		name:   "location_time",
		stage:  domain.StageLocationTime,
		fields: fields,
		instructions: promptPreamble + `
Extract journey geography and schedule.
Fields: ` + fieldList(fields) + `.
from_location and to_location are CITIES; reporting_address and drop_address are the
street-level pickup and drop points. reporting_time is the pickup time as written.
start_date is the first day of duty, end_date the last (same as start for one-day duties).
Omit dispatch_center unless the request names one explicitly.`,
		fallback: func(s Slice) map[string]string {
			out := map[string]string{}
			if v := roleScoped(s, []string{"from", "pickup city", "city of duty", "city"}, nil); v != "" {
				out[domain.FieldFromLocation] = v
			}
			if v := roleScoped(s, []string{"to", "drop city", "destination"}, nil); v != "" {
				out[domain.FieldToLocation] = v
			}
			if v := roleScoped(s, []string{"pickup address", "reporting address", "pick up", "pickup"}, nil); v != "" {
				out[domain.FieldReportingAddress] = v
			}
			if v := roleScoped(s, []string{"drop address", "drop"}, nil); v != "" {
				out[domain.FieldDropAddress] = v
			}
			if v := firstMatch(s, dateRe, nil); v != "" {
				out[domain.FieldStartDate] = v
			}
			if v := firstMatch(s, timeRe, nil); v != "" {
				out[domain.FieldReportingTime] = v
			}
			if from, ok := out[domain.FieldFromLocation]; ok && tables != nil {
				out[domain.FieldDispatchCenter] = tables.DispatchCenter(from)
			}
			return out
		},
	}
}

func dutyVehicleAgent(tables *rules.Tables) *Agent {
	fields := []string{
		domain.FieldVehicleGroup,
		domain.FieldDutyType,
	}
	return &Agent{
		name:   "duty_vehicle",
		stage:  domain.StageDutyVehicle,
		fields: fields,
		instructions: promptPreamble + `
Extract the requested vehicle and the nature of the duty.
Fields: ` + fieldList(fields) + `.
vehicle_group is the car asked for (e.g. "Innova", "Dzire", "sedan", "SUV") as written.
duty_type is the service description as written: airport transfer, local full day,
half day at disposal, outstation trip, and so on. Do not encode package codes.`,
		fallback: func(s Slice) map[string]string {
			out := map[string]string{}
			if v := roleScoped(s, []string{"vehicle", "car type", "cab type", "car", "cab"}, nil); v != "" {
				out[domain.FieldVehicleGroup] = v
			} else if tables != nil {
				content := strings.ToLower(s.Content())
				for alias := range tables.Vehicles {
					if strings.Contains(content, alias) {
						out[domain.FieldVehicleGroup] = alias
						break
					}
				}
			}
			if v := roleScoped(s, []string{"duty type", "duty", "type of service", "usage", "requirement"}, nil); v != "" {
				out[domain.FieldDutyType] = v
			}
			return out
		},
	}
}

func transportRefsAgent() *Agent {
	fields := []string{domain.FieldFlightTrain}
	return &Agent{
		name:   "transport_refs",
		stage:  domain.StageTransportRefs,
		fields: fields,
		instructions: promptPreamble + `
Extract the flight or train the traveler is arriving by or departing on.
Fields: ` + fieldList(fields) + `.
Copy the designator as written (e.g. "6E 5312", "AI-804", "12951 Rajdhani").
Omit the field when no flight or train is mentioned; never guess one from an
airport pickup alone.`,
		fallback: func(s Slice) map[string]string {
			out := map[string]string{}
			if v := roleScoped(s, []string{"flight", "train", "pnr"}, nil); v != "" {
				out[domain.FieldFlightTrain] = v
				return out
			}
			content := s.Content()
			if !strings.Contains(strings.ToLower(content), "flight") && !strings.Contains(strings.ToLower(content), "train") {
				return out
			}
			if v := flightRe.FindString(content); v != "" {
				out[domain.FieldFlightTrain] = v
			}
			return out
		},
	}
}

func requirementsAgent() *Agent {
	fields := []string{
		domain.FieldRemarks,
		domain.FieldLabels,
	}
	return &Agent{
		name:   "requirements",
		stage:  domain.StageRequirements,
		fields: fields,
		instructions: promptPreamble + `
Extract special requirements and traveler labels.
Fields: ` + fieldList(fields) + `.
remarks collects every special instruction verbatim: driver language, carrier/luggage
needs, billing notes, toll and parking instructions, anything the operator must know.
labels is a comma-separated list; use "` + domain.LabelVIP + `" only when the request
explicitly marks THIS traveler as a VIP, and "` + domain.LabelLadyGuest + `" only when
the traveler is addressed as Ms., Mrs., or Smt. Omit labels otherwise.`,
		fallback: func(s Slice) map[string]string {
			out := map[string]string{}
			var remarks []string
			for _, line := range strings.Split(s.Text, "\n") {
				l := strings.ToLower(line)
				for _, cue := range []string{"please ensure", "kindly", "note:", "special", "carrier", "luggage", "driver should", "bill to"} {
					if strings.Contains(l, cue) {
						remarks = append(remarks, strings.TrimSpace(line))
						break
					}
				}
			}
			for _, p := range s.Pairs {
				if matchesLabel(p.Label, []string{"remark", "note", "instruction", "special"}) && strings.TrimSpace(p.Value) != "" {
					remarks = append(remarks, strings.TrimSpace(p.Value))
				}
			}
			if len(remarks) > 0 {
				out[domain.FieldRemarks] = strings.Join(remarks, "; ")
			}
			return out
		},
	}
}

// StageNames lists chain stages in execution order, for logs.
func StageNames(chain []*Agent) string {
	names := make([]string, len(chain))
	for i, a := range chain {
		names[i] = a.Name()
	}
	return fmt.Sprintf("[%s]", strings.Join(names, " -> "))
}
