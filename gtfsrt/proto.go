package gtfsrt

import (
	"fmt"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// ToFeedMessage converts a merged view into a standard GTFS-Realtime FeedMessage.
func ToFeedMessage(c *Combined) *gtfsrtpb.FeedMessage {
	header := &gtfsrtpb.FeedHeader{
		GtfsRealtimeVersion: proto.String(c.Header.GTFSRealtimeVersion),
		Incrementality:      gtfsrtpb.FeedHeader_Incrementality(c.Header.Incrementality).Enum(),
	}
	if c.Header.Timestamp != nil && *c.Header.Timestamp >= 0 {
		header.Timestamp = proto.Uint64(uint64(*c.Header.Timestamp))
	}

	fm := &gtfsrtpb.FeedMessage{
		Header: header,
		Entity: make([]*gtfsrtpb.FeedEntity, 0, len(c.Entities)),
	}
	for i := range c.Entities {
		fm.Entity = append(fm.Entity, entityToProto(&c.Entities[i]))
	}
	return fm
}

// MarshalFeed encodes the merged view as GTFS-Realtime protobuf bytes.
func MarshalFeed(c *Combined) ([]byte, error) {
	b, err := proto.Marshal(ToFeedMessage(c))
	if err != nil {
		return nil, fmt.Errorf("marshal feed message: %w", err)
	}
	return b, nil
}

func entityToProto(e *Entity) *gtfsrtpb.FeedEntity {
	fe := &gtfsrtpb.FeedEntity{
		Id:        proto.String(e.ID),
		IsDeleted: proto.Bool(e.IsDeleted),
	}
	if tu := e.TripUpdate; tu != nil {
		ptu := &gtfsrtpb.TripUpdate{
			Trip:      tripToProto(tu.Trip),
			Vehicle:   vehicleToProto(tu.Vehicle),
			Timestamp: tu.Timestamp,
			Delay:     tu.Delay,
		}
		if ptu.Trip == nil {
			// trip is a required field of the protobuf TripUpdate.
			ptu.Trip = &gtfsrtpb.TripDescriptor{}
		}
		if stu := tu.StopTimeUpdate; stu != nil {
			ptu.StopTimeUpdate = []*gtfsrtpb.TripUpdate_StopTimeUpdate{{
				StopSequence:         stu.StopSequence,
				StopId:               stu.StopID,
				Arrival:              stopTimeEventToProto(stu.Arrival),
				Departure:            stopTimeEventToProto(stu.Departure),
				ScheduleRelationship: gtfsrtpb.TripUpdate_StopTimeUpdate_ScheduleRelationship(stu.ScheduleRelationship).Enum(),
			}}
		}
		fe.TripUpdate = ptu
	}
	if vp := e.Vehicle; vp != nil {
		pvp := &gtfsrtpb.VehiclePosition{
			Trip:                tripToProto(vp.Trip),
			Vehicle:             vehicleToProto(vp.Vehicle),
			CurrentStopSequence: vp.CurrentStopSequence,
			StopId:              vp.StopID,
			CurrentStatus:       gtfsrtpb.VehiclePosition_VehicleStopStatus(vp.CurrentStatus).Enum(),
			Timestamp:           vp.Timestamp,
		}
		if vp.Position != nil {
			pvp.Position = &gtfsrtpb.Position{
				Latitude:  proto.Float32(vp.Position.Latitude),
				Longitude: proto.Float32(vp.Position.Longitude),
				Bearing:   vp.Position.Bearing,
				Odometer:  vp.Position.Odometer,
				Speed:     vp.Position.Speed,
			}
		}
		if vp.CongestionLevel != nil {
			pvp.CongestionLevel = gtfsrtpb.VehiclePosition_CongestionLevel(*vp.CongestionLevel).Enum()
		}
		if vp.OccupancyStatus != nil {
			pvp.OccupancyStatus = gtfsrtpb.VehiclePosition_OccupancyStatus(*vp.OccupancyStatus).Enum()
		}
		fe.Vehicle = pvp
	}
	return fe
}

func tripToProto(t *TripDescriptor) *gtfsrtpb.TripDescriptor {
	if t == nil {
		return nil
	}
	pt := &gtfsrtpb.TripDescriptor{
		TripId:      t.TripID,
		RouteId:     t.RouteID,
		DirectionId: t.DirectionID,
		StartTime:   t.StartTime,
		StartDate:   t.StartDate,
	}
	if t.ScheduleRelationship != nil {
		pt.ScheduleRelationship = gtfsrtpb.TripDescriptor_ScheduleRelationship(*t.ScheduleRelationship).Enum()
	}
	return pt
}

func vehicleToProto(v *VehicleDescriptor) *gtfsrtpb.VehicleDescriptor {
	if v == nil {
		return nil
	}
	return &gtfsrtpb.VehicleDescriptor{Id: v.ID, Label: v.Label, LicensePlate: v.LicensePlate}
}

func stopTimeEventToProto(ev *StopTimeEvent) *gtfsrtpb.TripUpdate_StopTimeEvent {
	if ev == nil {
		return nil
	}
	return &gtfsrtpb.TripUpdate_StopTimeEvent{Delay: ev.Delay, Time: ev.Time, Uncertainty: ev.Uncertainty}
}

// FromFeedMessage converts a protobuf feed into an Envelope so protobuf feeds
// can be merged like the JSON ones. Only the first stop time update of each
// trip update is kept. Codes outside the variants this package knows are
// reported as a *DecodeError.
func FromFeedMessage(fm *gtfsrtpb.FeedMessage) (*Envelope, error) {
	if fm.GetHeader() == nil {
		return nil, &DecodeError{Field: "header", Err: ErrMissingField}
	}
	resp := &Response{
		Header: Header{
			GTFSRealtimeVersion: fm.GetHeader().GetGtfsRealtimeVersion(),
			Incrementality:      Incrementality(fm.GetHeader().GetIncrementality()),
		},
		Entity: make([]Entity, 0, len(fm.GetEntity())),
	}
	if fm.GetHeader().Timestamp != nil {
		ts := float64(fm.GetHeader().GetTimestamp())
		resp.Header.Timestamp = &ts
	}
	if resp.Header.Incrementality > Differential {
		return nil, &DecodeError{Field: "header.incrementality", Err: ErrUnknownEnum}
	}

	for i, fe := range fm.GetEntity() {
		ent, err := entityFromProto(fe)
		if err != nil {
			return nil, within(fmt.Sprintf("entity[%d]", i), err)
		}
		resp.Entity = append(resp.Entity, ent)
	}
	return &Envelope{Status: "OK", Response: resp}, nil
}

func entityFromProto(fe *gtfsrtpb.FeedEntity) (Entity, error) {
	if fe.Id == nil {
		return Entity{}, &DecodeError{Field: "id", Err: ErrMissingField}
	}
	ent := Entity{ID: fe.GetId(), IsDeleted: fe.GetIsDeleted()}

	if ptu := fe.GetTripUpdate(); ptu != nil {
		if ptu.GetTrip() == nil {
			return Entity{}, &DecodeError{Field: "trip_update.trip", Err: ErrMissingField}
		}
		trip, err := tripFromProto(ptu.GetTrip())
		if err != nil {
			return Entity{}, within("trip_update.trip", err)
		}
		tu := &TripUpdate{
			Trip:      trip,
			Vehicle:   vehicleFromProto(ptu.GetVehicle()),
			Timestamp: ptu.Timestamp,
			Delay:     ptu.Delay,
		}
		if updates := ptu.GetStopTimeUpdate(); len(updates) > 0 {
			pstu := updates[0]
			stu := &StopTimeUpdate{
				StopSequence:         pstu.StopSequence,
				StopID:               pstu.StopId,
				Arrival:              stopTimeEventFromProto(pstu.GetArrival()),
				Departure:            stopTimeEventFromProto(pstu.GetDeparture()),
				ScheduleRelationship: StopScheduleRelationship(pstu.GetScheduleRelationship()),
			}
			if stu.ScheduleRelationship > StopNoData {
				return Entity{}, &DecodeError{Field: "trip_update.stop_time_update.schedule_relationship", Err: ErrUnknownEnum}
			}
			tu.StopTimeUpdate = stu
		}
		ent.TripUpdate = tu
	}

	if pvp := fe.GetVehicle(); pvp != nil {
		trip, err := tripFromProto(pvp.GetTrip())
		if err != nil {
			return Entity{}, within("vehicle.trip", err)
		}
		vp := &VehiclePosition{
			Trip:                trip,
			Vehicle:             vehicleFromProto(pvp.GetVehicle()),
			CurrentStopSequence: pvp.CurrentStopSequence,
			StopID:              pvp.StopId,
			CurrentStatus:       InTransitTo,
			Timestamp:           pvp.Timestamp,
		}
		if pvp.CurrentStatus != nil {
			vp.CurrentStatus = VehicleStopStatus(pvp.GetCurrentStatus())
			if vp.CurrentStatus > InTransitTo {
				return Entity{}, &DecodeError{Field: "vehicle.current_status", Err: ErrUnknownEnum}
			}
		}
		if pos := pvp.GetPosition(); pos != nil {
			vp.Position = &Position{
				Latitude:  pos.GetLatitude(),
				Longitude: pos.GetLongitude(),
				Bearing:   pos.Bearing,
				Odometer:  pos.Odometer,
				Speed:     pos.Speed,
			}
		}
		if pvp.CongestionLevel != nil {
			level := CongestionLevel(pvp.GetCongestionLevel())
			if level > SevereCongestion {
				return Entity{}, &DecodeError{Field: "vehicle.congestion_level", Err: ErrUnknownEnum}
			}
			vp.CongestionLevel = &level
		}
		if pvp.OccupancyStatus != nil {
			occ := OccupancyStatus(pvp.GetOccupancyStatus())
			if occ > NotAcceptingPassengers {
				return Entity{}, &DecodeError{Field: "vehicle.occupancy_status", Err: ErrUnknownEnum}
			}
			vp.OccupancyStatus = &occ
		}
		ent.Vehicle = vp
	}
	return ent, nil
}

func tripFromProto(pt *gtfsrtpb.TripDescriptor) (*TripDescriptor, error) {
	if pt == nil {
		return nil, nil
	}
	t := &TripDescriptor{
		TripID:      pt.TripId,
		RouteID:     pt.RouteId,
		DirectionID: pt.DirectionId,
		StartTime:   pt.StartTime,
		StartDate:   pt.StartDate,
	}
	if pt.ScheduleRelationship != nil {
		rel := TripScheduleRelationship(pt.GetScheduleRelationship())
		if rel > TripCancelled {
			return nil, &DecodeError{Field: "schedule_relationship", Err: ErrUnknownEnum}
		}
		t.ScheduleRelationship = &rel
	}
	return t, nil
}

func vehicleFromProto(pv *gtfsrtpb.VehicleDescriptor) *VehicleDescriptor {
	if pv == nil {
		return nil
	}
	return &VehicleDescriptor{ID: pv.Id, Label: pv.Label, LicensePlate: pv.LicensePlate}
}

func stopTimeEventFromProto(ev *gtfsrtpb.TripUpdate_StopTimeEvent) *StopTimeEvent {
	if ev == nil {
		return nil
	}
	return &StopTimeEvent{Delay: ev.Delay, Time: ev.Time, Uncertainty: ev.Uncertainty}
}
